package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/lineview/lineview"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// failingQueue rejects buffer writes once failWrites is set and counts
// submissions; everything else goes to the wrapped queue.
type failingQueue struct {
	hal.Queue
	failWrites bool
	submits    int
	suppressed []bool
}

func (q *failingQueue) WriteBuffer(buf hal.Buffer, offset uint64, data []byte) error {
	if q.failWrites {
		return errors.New("write rejected")
	}
	return q.Queue.WriteBuffer(buf, offset, data)
}

func (q *failingQueue) Submit(cmds []hal.CommandBuffer) (uint64, error) {
	q.submits++
	return q.Queue.Submit(cmds)
}

func (q *failingQueue) SetSwapchainSuppressed(suppressed bool) {
	q.suppressed = append(q.suppressed, suppressed)
	q.Queue.SetSwapchainSuppressed(suppressed)
}

type fakeHalProvider struct {
	device any
	queue  any
}

func (p fakeHalProvider) HalDevice() any { return p.device }
func (p fakeHalProvider) HalQueue() any  { return p.queue }

func TestSharedContextRejectsNil(t *testing.T) {
	_, err := sharedContext(nil, nil, "external")
	var cce *lineview.ContextCreationError
	if !errors.As(err, &cce) {
		t.Fatalf("expected ContextCreationError, got %v", err)
	}
}

func TestContextFromProvider(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	ctx, err := contextFromProvider(fakeHalProvider{device: device, queue: queue})
	if err != nil {
		t.Fatalf("contextFromProvider: %v", err)
	}
	if !ctx.external {
		t.Error("provider context must not be owned")
	}
	if ctx.device != device || ctx.queue != queue {
		t.Error("provider objects not stored")
	}

	// Releasing a shared context must leave the device usable.
	ctx.release()
	if _, err := device.CreateFence(); err != nil {
		t.Errorf("device unusable after shared release: %v", err)
	}
}

func TestContextFromProviderErrors(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	tests := []struct {
		name     string
		provider any
	}{
		{"not a provider", struct{}{}},
		{"wrong device type", fakeHalProvider{device: "gpu", queue: queue}},
		{"wrong queue type", fakeHalProvider{device: device, queue: 42}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := contextFromProvider(tt.provider)
			var cce *lineview.ContextCreationError
			if !errors.As(err, &cce) {
				t.Fatalf("expected ContextCreationError, got %v", err)
			}
		})
	}
}
