package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"

	"tetherline.dev/internal/sim/physics"
)

// stateDigest hashes everything that affects future ticks. Iteration is in
// handle index order and sorted player id order, so equal worlds hash equal.
func (w *World) stateDigest(nowTick uint64) string {
	h := sha256.New()
	var tmp [8]byte

	digestWriteU64(h, &tmp, nowTick)
	digestWriteU64(h, &tmp, w.nextPlayerNum.Load())

	digestWriteU64(h, &tmp, uint64(w.space.BodyCount()))
	w.space.EachBody(func(bh physics.BodyHandle, b physics.Body) {
		digestWriteHandle(h, &tmp, bh.Index, bh.Gen)
		h.Write([]byte{byte(b.Kind)})
		digestWriteVec(h, &tmp, b.Pos)
		digestWriteVec(h, &tmp, b.Vel)
	})

	digestWriteU64(h, &tmp, uint64(w.space.JointCount()))
	w.space.EachJoint(func(jh physics.JointHandle, j physics.JointDef) {
		digestWriteHandle(h, &tmp, jh.Index, jh.Gen)
		digestWriteHandle(h, &tmp, j.A.Index, j.A.Gen)
		digestWriteHandle(h, &tmp, j.B.Index, j.B.Gen)
		digestWriteF64(h, &tmp, j.MinLength)
		digestWriteF64(h, &tmp, j.MaxLength)
		digestWriteF64(h, &tmp, j.Compliance)
	})

	for _, id := range w.sortedPlayerIDs() {
		p := w.players[id]
		st := p.Tether.State
		h.Write([]byte(id))
		h.Write([]byte{0, boolByte(st.Deployed), boolByte(st.Locked)})
		digestWriteU64(h, &tmp, uint64(st.Segments))
		digestWriteF64(h, &tmp, st.Distance)
		digestWriteHandle(h, &tmp, st.Anchor.Index, st.Anchor.Gen)
		digestWriteHandle(h, &tmp, st.Target.Index, st.Target.Gen)
		digestWriteHandle(h, &tmp, st.FinalJoint.Index, st.FinalJoint.Gen)
		digestWriteI64(h, &tmp, int64(st.Cooldown.Remaining))
		digestWriteVec(h, &tmp, p.Move)
	}

	return hex.EncodeToString(h.Sum(nil))
}

func digestWriteU64(h hashWriter, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteI64(h hashWriter, tmp *[8]byte, v int64) {
	digestWriteU64(h, tmp, uint64(v))
}

func digestWriteF64(h hashWriter, tmp *[8]byte, v float64) {
	digestWriteU64(h, tmp, math.Float64bits(v))
}

func digestWriteVec(h hashWriter, tmp *[8]byte, v physics.Vec3) {
	digestWriteF64(h, tmp, v.X)
	digestWriteF64(h, tmp, v.Y)
	digestWriteF64(h, tmp, v.Z)
}

func digestWriteHandle(h hashWriter, tmp *[8]byte, idx, gen uint32) {
	digestWriteU64(h, tmp, uint64(idx)<<32|uint64(gen))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

type hashWriter interface {
	Write(p []byte) (n int, err error)
}
