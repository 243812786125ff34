package capture

import (
	"sync"

	"gocv.io/x/gocv"
)

// Preview keeps the most recent frame as JPEG for the live video stream.
// Frames are only encoded while at least one viewer is attached.
type Preview struct {
	mu      sync.RWMutex
	jpeg    []byte
	seq     uint64
	viewers int
}

// NewPreview creates an empty Preview.
func NewPreview() *Preview {
	return &Preview{}
}

// Attach registers a viewer. Call the returned func to detach.
func (p *Preview) Attach() func() {
	p.mu.Lock()
	p.viewers++
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			p.viewers--
			p.mu.Unlock()
		})
	}
}

// Watched reports whether any viewer is attached.
func (p *Preview) Watched() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.viewers > 0
}

// Publish encodes frame and makes it the latest image. It does nothing
// when nobody is watching.
func (p *Preview) Publish(frame *gocv.Mat) error {
	if frame == nil || frame.Empty() || !p.Watched() {
		return nil
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return err
	}
	data := buf.GetBytes()
	buf.Close()

	p.Set(data)
	return nil
}

// Set stores an already encoded JPEG.
func (p *Preview) Set(jpeg []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jpeg = jpeg
	p.seq++
}

// Latest returns the newest JPEG and its sequence number. The sequence is
// zero until the first frame arrives.
func (p *Preview) Latest() ([]byte, uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.jpeg, p.seq
}
