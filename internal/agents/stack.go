package agents

import "encoding/json"

// TaskStack is a villager's LIFO queue of work. The bottom task is the floor
// and is never popped, so a live villager always has a current task.
type TaskStack struct {
	tasks []Task
}

// NewTaskStack returns a stack holding only the floor task.
func NewTaskStack(floor Task) TaskStack {
	return TaskStack{tasks: []Task{floor}}
}

// Push puts t on top.
func (s *TaskStack) Push(t Task) {
	s.tasks = append(s.tasks, t)
}

// Pop removes the top task. It reports false and does nothing when only the
// floor remains.
func (s *TaskStack) Pop() bool {
	if len(s.tasks) <= 1 {
		return false
	}
	s.tasks[len(s.tasks)-1] = Task{}
	s.tasks = s.tasks[:len(s.tasks)-1]
	return true
}

// Top returns the current task, or nil on an uninitialised stack.
func (s *TaskStack) Top() *Task {
	if len(s.tasks) == 0 {
		return nil
	}
	return &s.tasks[len(s.tasks)-1]
}

// Replace swaps the current task for t. The floor is replaced in place.
func (s *TaskStack) Replace(t Task) {
	if len(s.tasks) == 0 {
		s.tasks = append(s.tasks, t)
		return
	}
	s.tasks[len(s.tasks)-1] = t
}

// Len returns the number of tasks including the floor.
func (s *TaskStack) Len() int {
	return len(s.tasks)
}

// Tasks returns a copy of the stack, bottom first.
func (s *TaskStack) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// MarshalJSON encodes the stack bottom first.
func (s TaskStack) MarshalJSON() ([]byte, error) {
	if s.tasks == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.tasks)
}
