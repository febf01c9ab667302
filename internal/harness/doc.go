// Package harness plays graph documents against a real engine with
// deterministic frames and checks the outcome.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: fade_on_scroll
//	description: "Scrolling fades the header out"
//	document: ../documents/fade.yaml   # or an inline graph: block
//	step: 16ms                         # simulated time between frames
//	frames: 0                          # extra idle frames after the script
//	assertions:
//	  - type: view_props
//	    view: 11
//	    props: { opacity: 0.5 }
//	  - type: node_value
//	    node: 1
//	    value: 50
//	  - type: event_count
//	    event: onAnimatedCall
//	    count: 0
//	  - type: no_errors
//
// # Determinism
//
// Frames are fired by hand at multiples of the step interval, the run id is
// fixed, and every effect is stamped with its frame number. Two runs of the
// same scenario produce byte-identical traces, which RunWithGolden compares
// against testdata/golden/<name>.golden.
package harness
