package game

import "fmt"

// AnimOpcode is an instruction of the timed animation scripts run by the
// standard tick handler.
type AnimOpcode uint8

const (
	OpEnd       AnimOpcode = iota // stop; the hotspot idles from now on
	OpTimeout                     // A: ticks to wait
	OpPosition                    // A, B: absolute position
	OpChangePos                   // A, B: relative move
	OpFrame                       // A: frame number
	OpLayer                       // A: layer
	OpJump                        // A: instruction index
	OpUnload                      // deactivate the hotspot
)

func (o AnimOpcode) String() string {
	switch o {
	case OpEnd:
		return "end"
	case OpTimeout:
		return "timeout"
	case OpPosition:
		return "position"
	case OpChangePos:
		return "change_pos"
	case OpFrame:
		return "frame"
	case OpLayer:
		return "layer"
	case OpJump:
		return "jump"
	case OpUnload:
		return "unload"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// AnimOp is one script instruction.
type AnimOp struct {
	Op   AnimOpcode
	A, B int
}

// maxOpsPerTick stops a script that jumps in circles without a timeout.
const maxOpsPerTick = 64

// animRunner steps through one script.
type animRunner struct {
	ops     []AnimOp
	pc      int
	timeout int
	stopped bool
}

// step executes instructions until the script waits, ends or unloads. It
// returns unload=true when the hotspot should be deactivated.
func (r *animRunner) step(w *World, h *Hotspot) (unload bool) {
	if r.stopped {
		return false
	}
	if r.timeout > 0 {
		r.timeout--
		return false
	}
	for n := 0; n < maxOpsPerTick; n++ {
		if r.pc < 0 || r.pc >= len(r.ops) {
			r.stopped = true
			return false
		}
		op := r.ops[r.pc]
		r.pc++
		switch op.Op {
		case OpEnd:
			r.stopped = true
			return false
		case OpTimeout:
			r.timeout = op.A - 1
			return false
		case OpPosition:
			h.setPosition(op.A, op.B)
		case OpChangePos:
			h.setPosition(h.X()+op.A, h.Y()+op.B)
		case OpFrame:
			h.data.Frame = op.A
		case OpLayer:
			h.data.Layer = Layer(op.A)
		case OpJump:
			r.pc = op.A
		case OpUnload:
			r.stopped = true
			return true
		default:
			w.log.WithField("hotspot", h.ID()).Warnf("anim script: unknown opcode %s at %d", op.Op, r.pc-1)
			r.stopped = true
			return false
		}
	}
	w.log.WithField("hotspot", h.ID()).Warn("anim script: no timeout within step limit")
	return false
}
