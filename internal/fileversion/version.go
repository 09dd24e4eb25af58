// Package fileversion reads the fixed file version that Windows stores in a PE
// image's VS_VERSIONINFO resource.
package fileversion

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/conn-castle/vizdeploy/internal/messages"
)

// Version is the four-part file version of a PE image.
// Major and Minor drive deployment decisions; Build and Revision are informational.
type Version struct {
	Major    uint16
	Minor    uint16
	Build    uint16
	Revision uint16
}

// String formats v as major.minor.build.revision.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Build, v.Revision)
}

// Short formats v as major.minor.
func (v Version) Short() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compare orders versions over all four parts.
// It returns -1 when v < other, 0 when equal, and 1 when v > other.
func (v Version) Compare(other Version) int {
	a := [4]uint16{v.Major, v.Minor, v.Build, v.Revision}
	b := [4]uint16{other.Major, other.Minor, other.Build, other.Revision}
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// ParseString parses a dotted version with two to four numeric parts.
// Missing trailing parts are zero.
func ParseString(s string) (Version, error) {
	trimmed := strings.TrimSpace(s)
	parts := strings.Split(trimmed, ".")
	if len(parts) < 2 || len(parts) > 4 {
		return Version{}, fmt.Errorf(messages.FileVersionInvalidStringFmt, s)
	}
	var nums [4]uint16
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 16)
		if err != nil {
			return Version{}, fmt.Errorf(messages.FileVersionInvalidSegmentFmt, part, err)
		}
		nums[i] = uint16(n)
	}
	return Version{Major: nums[0], Minor: nums[1], Build: nums[2], Revision: nums[3]}, nil
}
