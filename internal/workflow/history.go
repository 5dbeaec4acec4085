package workflow

import "image"

// DefaultHistoryCapacity is the number of undo snapshots a session keeps.
const DefaultHistoryCapacity = 3

// history is a fixed-capacity LIFO of image snapshots. Pushing onto a full
// history evicts the oldest entry.
type history struct {
	buf   []image.Image
	start int // index of the oldest entry
	n     int
}

func newHistory(capacity int) *history {
	if capacity < 1 {
		capacity = 1
	}
	return &history{buf: make([]image.Image, capacity)}
}

func (h *history) Push(img image.Image) {
	if h.n == len(h.buf) {
		h.buf[h.start] = nil
		h.start = (h.start + 1) % len(h.buf)
		h.n--
	}
	h.buf[(h.start+h.n)%len(h.buf)] = img
	h.n++
}

func (h *history) Pop() (image.Image, bool) {
	if h.n == 0 {
		return nil, false
	}
	i := (h.start + h.n - 1) % len(h.buf)
	img := h.buf[i]
	h.buf[i] = nil
	h.n--
	return img, true
}

func (h *history) Len() int { return h.n }

func (h *history) Cap() int { return len(h.buf) }
