package attendance

import (
	"fmt"
	"math"
)

type ProjectionKind string

const (
	ProjectionCanMiss    ProjectionKind = "canMiss"
	ProjectionMustAttend ProjectionKind = "mustAttend"
)

// maxProjection bounds projected class counts. Targets close enough to 0 or
// 100 to need more classes than this are rejected.
const maxProjection = math.MaxInt32

// correctionSteps bounds the exact adjustment of the closed form estimate.
const correctionSteps = 4

type Projection struct {
	Kind  ProjectionKind `json:"kind"`
	Count int            `json:"count"`
}

// ProjectTarget returns how many upcoming classes can be missed while staying
// at or above target percent, or how many must be attended to reach it.
func ProjectTarget(present, total int, target float64) (Projection, error) {
	if math.IsNaN(target) || target <= 0 || target > 100 {
		return Projection{}, ErrInvalidTarget
	}
	if total <= 0 {
		return Projection{}, ErrDivisionUndefined
	}
	// A missed class can never be caught up to 100%.
	if target == 100 {
		return Projection{}, ErrDivisionUndefined
	}

	ratio := target / 100
	current := float64(present) / float64(total) * 100

	if current > target {
		estimate := math.Floor((float64(present) - ratio*float64(total)) / ratio)
		if estimate >= maxProjection {
			return Projection{}, fmt.Errorf("%w: more than %d classes can be missed", ErrInvalidTarget, maxProjection)
		}
		m := max(int(estimate), 0)
		// the closed form may be off by one after rounding
		for i := 0; i < correctionSteps && m > 0 && !meets(present, total+m, target); i++ {
			m--
		}
		for i := 0; i < correctionSteps && meets(present, total+m+1, target); i++ {
			m++
		}
		return Projection{Kind: ProjectionCanMiss, Count: m}, nil
	}

	estimate := math.Ceil((ratio*float64(total) - float64(present)) / (1 - ratio))
	if estimate >= maxProjection {
		return Projection{}, fmt.Errorf("%w: more than %d classes must be attended", ErrInvalidTarget, maxProjection)
	}
	n := max(int(estimate), 0)
	for i := 0; i < correctionSteps && n > 0 && meets(present+n-1, total+n-1, target); i++ {
		n--
	}
	for i := 0; i < correctionSteps && !meets(present+n, total+n, target); i++ {
		n++
	}
	return Projection{Kind: ProjectionMustAttend, Count: n}, nil
}

// meets reports present/total >= target/100 without dividing.
func meets(present, total int, target float64) bool {
	return float64(present)*100 >= target*float64(total)
}
