package models

// Instance states used to filter DescribeInstances
const (
	StateRunning = "running"
	StateStopped = "stopped"
)

// Reservation groups the instances launched by one request, in the order EC2 returned them
type Reservation struct {
	ReservationID string
	Instances     []Instance
}

// Instance represents the parts of an EC2 instance the scheduler reads
type Instance struct {
	InstanceID string
	Tags       map[string]string
}

// HasTag reports whether the instance carries the tag key, whatever its value
func (i Instance) HasTag(key string) bool {
	_, ok := i.Tags[key]
	return ok
}
