// Package schema is the static registry of flashcard output shapes.
//
// Each Definition describes one shape (basic, scored, cloze, illustrated):
// the instruction given to the model, the JSON structure the model must
// return, and the validation rule applied to every returned item. The
// registry is built once at package initialisation and never mutated.
package schema
