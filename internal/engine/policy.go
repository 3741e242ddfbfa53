package engine

// SecurityObjectType is the object type the default policy treats as
// security relevant.
const SecurityObjectType = "OSI_Security"

// DefaultRollThreshold is the roll a classified object must beat.
const DefaultRollThreshold = 70

// Policy decides which generated objects get a security mark. An object is
// marked when Classify accepts its type and a roll in [0, 100] exceeds
// RollThreshold. The roll is drawn only for classified objects.
type Policy struct {
	Classify      func(objectType string) bool
	RollThreshold int
}

// TypePolicy classifies the listed object types.
func TypePolicy(threshold int, objectTypes ...string) Policy {
	set := make(map[string]bool, len(objectTypes))
	for _, objectType := range objectTypes {
		set[objectType] = true
	}
	return Policy{
		Classify:      func(objectType string) bool { return set[objectType] },
		RollThreshold: threshold,
	}
}

// DefaultPolicy classifies SecurityObjectType with DefaultRollThreshold.
func DefaultPolicy() Policy {
	return TypePolicy(DefaultRollThreshold, SecurityObjectType)
}

func (p Policy) classifies(objectType string) bool {
	return p.Classify != nil && p.Classify(objectType)
}
