package domain

// Landmark is a single tracked point in world space. Visibility is the
// tracker's confidence in [0,1] that the point was actually observed.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// ArmPose holds the two landmarks needed for rigid arm control.
type ArmPose struct {
	Shoulder Landmark `json:"shoulder"`
	Wrist    Landmark `json:"wrist"`
}

// Sample is one immutable measurement emitted by the pose source.
// A nil arm serializes as JSON null and means the arm was not tracked
// with sufficient visibility in that frame.
type Sample struct {
	Timestamp float64  `json:"timestamp"`
	LeftArm   *ArmPose `json:"left_arm"`
	RightArm  *ArmPose `json:"right_arm"`
}

// Welcome is the handshake record sent to a client right after its
// connection is accepted, before any samples.
type Welcome struct {
	Status string `json:"status"`
}

// StatusConnected is the Welcome status confirming the channel is live.
const StatusConnected = "connected"
