package gatts

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cornelk/hashmap"
)

var (
	ErrUnknownTask   = errors.New("unknown profile task")
	ErrDuplicateTask = errors.New("profile task already registered")
	ErrInvalidLayout = errors.New("invalid attribute layout")
)

// Profile binds a compiled attribute database to its task id and dispatcher.
type Profile struct {
	TaskID     uint16
	DB         []Desc
	Services   []uint8 // service start indices followed by len(DB)
	Dispatcher Dispatcher
}

// Validate checks the service index array against the database.
func (p *Profile) Validate() error {
	if len(p.Services) == 0 {
		return fmt.Errorf("%w: task %d has no service index sentinel", ErrInvalidLayout, p.TaskID)
	}
	if last := int(p.Services[len(p.Services)-1]); last != len(p.DB) {
		return fmt.Errorf("%w: task %d sentinel is %d, database has %d records", ErrInvalidLayout, p.TaskID, last, len(p.DB))
	}
	for i := 1; i < len(p.Services); i++ {
		if p.Services[i] <= p.Services[i-1] {
			return fmt.Errorf("%w: task %d service indices are not increasing at %d", ErrInvalidLayout, p.TaskID, i)
		}
	}
	return nil
}

// Registry maps task ids to profiles. Registration happens at startup; lookups
// may run concurrently from any goroutine.
type Registry struct {
	profiles *hashmap.Map[uint16, *Profile]
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{profiles: hashmap.New[uint16, *Profile]()}
}

// Register validates p and adds it under p.TaskID.
func (r *Registry) Register(p *Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Dispatcher == nil {
		p.Dispatcher = NewRouter()
	}
	if _, loaded := r.profiles.GetOrInsert(p.TaskID, p); loaded {
		return fmt.Errorf("%w: %d", ErrDuplicateTask, p.TaskID)
	}
	return nil
}

// Lookup returns the profile registered for task.
func (r *Registry) Lookup(task uint16) (*Profile, bool) {
	return r.profiles.Get(task)
}

// Len returns the number of registered profiles.
func (r *Registry) Len() int {
	return r.profiles.Len()
}

// Tasks returns the registered task ids in ascending order.
func (r *Registry) Tasks() []uint16 {
	tasks := make([]uint16, 0, r.profiles.Len())
	r.profiles.Range(func(task uint16, _ *Profile) bool {
		tasks = append(tasks, task)
		return true
	})
	sort.Slice(tasks, func(i, j int) bool { return tasks[i] < tasks[j] })
	return tasks
}

// Dispatch delivers msg to the profile registered for task. Messages other
// than ValueRequest, AttInfoRequest and WriteIndication are ignored.
func (r *Registry) Dispatch(task uint16, msg any, rsp Responder) error {
	p, ok := r.profiles.Get(task)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTask, task)
	}
	switch m := msg.(type) {
	case ValueRequest:
		return p.Dispatcher.ServeValue(m, rsp)
	case AttInfoRequest:
		return p.Dispatcher.ServeAttInfo(m, rsp)
	case WriteIndication:
		p.Dispatcher.ServeWrite(m)
	}
	return nil
}
