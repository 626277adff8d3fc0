// Package referenceframe names the robot's coordinate frames and resolves rigid transforms
// between them.
package referenceframe

import (
	"strings"
)

// Frame names published by the robot. odom and vision are world-fixed estimates; flat_body is the
// body frame with roll and pitch removed.
const (
	OdomFrame     = "odom"
	VisionFrame   = "vision"
	BodyFrame     = "body"
	FlatBodyFrame = "flat_body"
	HandFrame     = "hand"
)

// Namespace prefixes a frame name with a robot's namespace. An empty namespace leaves the frame
// name unchanged.
func Namespace(robotName, frame string) string {
	if robotName == "" {
		return frame
	}
	return strings.TrimSuffix(robotName, "/") + "/" + frame
}

// Names is the set of frame names for one robot, namespaced.
type Names struct {
	Odom     string
	Vision   string
	Body     string
	FlatBody string
	Hand     string
}

// NamesFor returns the frame names for the given robot namespace.
func NamesFor(robotName string) Names {
	return Names{
		Odom:     Namespace(robotName, OdomFrame),
		Vision:   Namespace(robotName, VisionFrame),
		Body:     Namespace(robotName, BodyFrame),
		FlatBody: Namespace(robotName, FlatBodyFrame),
		Hand:     Namespace(robotName, HandFrame),
	}
}
