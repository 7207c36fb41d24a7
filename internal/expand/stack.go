package expand

// frame is one text on the rescan stack with its read position.
type frame struct {
	text string
	pos  int
}

// rescanStack holds the texts waiting to be scanned. The top frame is the
// one being read; pushing suspends the frame below at its current position.
type rescanStack struct {
	frames []frame
}

func (s *rescanStack) push(text string) {
	s.frames = append(s.frames, frame{text: text})
}

// next returns the next byte of the top frame, popping frames as they run
// out. It returns false once the stack is empty.
func (s *rescanStack) next() (byte, bool) {
	for len(s.frames) > 0 {
		top := &s.frames[len(s.frames)-1]
		if top.pos >= len(top.text) {
			s.frames = s.frames[:len(s.frames)-1]
			log.Debugw("popped frame", "depth", len(s.frames))
			continue
		}
		c := top.text[top.pos]
		top.pos++
		return c, true
	}
	return 0, false
}

func (s *rescanStack) depth() int {
	return len(s.frames)
}
