package uplink

import (
	"fmt"
	"strings"
)

// Containers are mapped to capsules purely by name: the deploy path sets
// the compose project to "capsule-<id>", so the runtime names containers
// "capsule-<id>-<service>-<n>" (older compose releases used underscores).
// Discovery by this contract is what lets stop and logs work without a
// stored compose file.

// ProjectName returns the compose project name for a capsule.
func ProjectName(capsuleID int64) string {
	return fmt.Sprintf("capsule-%d", capsuleID)
}

// BelongsToCapsule reports whether a container name was produced by a
// deploy of the given capsule.
func BelongsToCapsule(containerName string, capsuleID int64) bool {
	name := strings.TrimPrefix(containerName, "/")
	prefix := ProjectName(capsuleID)
	return strings.HasPrefix(name, prefix+"-") || strings.HasPrefix(name, prefix+"_")
}
