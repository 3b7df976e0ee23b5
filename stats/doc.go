// Package stats records admission events emitted by a [gate.Gate].
//
// Recording is best effort: a failing [Recorder] is logged by the gate and
// never changes an admission decision. Nothing recorded here is read back to
// decide admissions, so a shared backend such as Redis only aggregates
// counters across processes; it does not coordinate their quotas.
//
//	mem := stats.NewMemoryStore()
//	g, err := gate.New(30, time.Minute, gate.WithRecorder(mem))
//	...
//	fmt.Println(mem.Total().Delayed)
//
// [gate.Gate]: github.com/adamwoolhether/rategate/gate.Gate
package stats
