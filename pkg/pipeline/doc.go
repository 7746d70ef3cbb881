// Package pipeline provides a pipeline for processing data.
//
// A pipeline is a chain of steps connected by channels. A root step produces elements, each following step
// transforms the elements it receives and passes them on, and a sink consumes the final output. Every step
// runs in its own goroutine, so a step only starts working on an element once the previous step handed it over.
// With a single element flowing through the chain, steps execute strictly one after the other.
//
// The pipeline stops on the first encountered error: Run returns it, wrapped with the name of the failing step,
// and cancels the context shared by all the steps. A step that never receives an element never runs.
//
// Pipeline options (see the measure and drawer packages) observe the steps while the pipeline is built and run.
package pipeline
