package graph

// Kind is the tag of a node variant.
type Kind int

const (
	// KindUnknown is the zero Kind; no node has it.
	KindUnknown Kind = iota
	KindValue
	KindSet
	KindBlock
	KindOperator
	KindCond
	KindStyle
	KindTransform
	KindProps
	KindEvent
	KindClock
	KindClockStart
	KindClockStop
	KindClockTest
	KindCall
	KindDebug
	KindBezier
)

// kindNames are the config "type" tags of each kind.
var kindNames = map[Kind]string{
	KindValue:      "value",
	KindSet:        "set",
	KindBlock:      "block",
	KindOperator:   "op",
	KindCond:       "cond",
	KindStyle:      "style",
	KindTransform:  "transform",
	KindProps:      "props",
	KindEvent:      "event",
	KindClock:      "clock",
	KindClockStart: "clockStart",
	KindClockStop:  "clockStop",
	KindClockTest:  "clockTest",
	KindCall:       "call",
	KindDebug:      "debug",
	KindBezier:     "bezier",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind maps a config type tag to its Kind.
func ParseKind(tag string) (Kind, bool) {
	for k, name := range kindNames {
		if name == tag {
			return k, true
		}
	}
	return 0, false
}
