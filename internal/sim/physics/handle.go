package physics

import (
	"errors"
	"fmt"
)

var (
	ErrStaleBody  = errors.New("physics: stale body handle")
	ErrStaleJoint = errors.New("physics: stale joint handle")
	ErrSameBody   = errors.New("physics: joint endpoints must differ")
)

// BodyHandle is an arena index plus the generation of the slot at the time the
// body was created. The zero value never resolves.
type BodyHandle struct {
	Index uint32 `json:"index"`
	Gen   uint32 `json:"gen"`
}

func (h BodyHandle) Valid() bool { return h.Gen != 0 }

func (h BodyHandle) String() string {
	if !h.Valid() {
		return "B-"
	}
	return fmt.Sprintf("B%d.%d", h.Index, h.Gen)
}

type JointHandle struct {
	Index uint32 `json:"index"`
	Gen   uint32 `json:"gen"`
}

func (h JointHandle) Valid() bool { return h.Gen != 0 }

func (h JointHandle) String() string {
	if !h.Valid() {
		return "J-"
	}
	return fmt.Sprintf("J%d.%d", h.Index, h.Gen)
}
