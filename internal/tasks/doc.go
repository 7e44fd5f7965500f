// Package tasks holds the process-wide registry of supported inference tasks.
//
// Each task is described by a Descriptor: the generic pipeline implementation that
// serves it, the ordered model classes it accepts, an optional default model
// identifier and the input modality. The registry is declared as data and never
// mutated after package initialization, so concurrent lookups need no locking.
//
// Example usage:
//
//	d, err := tasks.Lookup("object-detection")
//	if err != nil {
//	    log.Fatal(err) // *tasks.UnknownTaskError
//	}
//	fmt.Println(d.DefaultModel) // amd/yolox-s
package tasks
