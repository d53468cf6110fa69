// Package rendertest provides gomock-backed doubles of the Vulkan instance
// driver, device driver and presentation extensions. The doubles track every
// live object, execute buffer copies against host memory and replay scripted
// acquire and present results.
package rendertest

// Journal is an ordered log of driver calls shared by the doubles of one GPU.
// Events look like "create:Fence", "destroy:Fence" or "QueueSubmit".
type Journal struct {
	Events []string
}

func (j *Journal) Record(event string) {
	j.Events = append(j.Events, event)
}

// Index returns the position of the first occurrence of event, or -1.
func (j *Journal) Index(event string) int {
	for i, e := range j.Events {
		if e == event {
			return i
		}
	}
	return -1
}

// LastIndex returns the position of the last occurrence of event, or -1.
func (j *Journal) LastIndex(event string) int {
	for i := len(j.Events) - 1; i >= 0; i-- {
		if j.Events[i] == event {
			return i
		}
	}
	return -1
}

func (j *Journal) Count(event string) int {
	count := 0
	for _, e := range j.Events {
		if e == event {
			count++
		}
	}
	return count
}

// Since returns the events recorded after mark, where mark is a previous
// value of len(j.Events).
func (j *Journal) Since(mark int) []string {
	return append([]string(nil), j.Events[mark:]...)
}

func (j *Journal) Mark() int {
	return len(j.Events)
}
