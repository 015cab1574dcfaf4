// Package validation checks JSON request bodies against declarative schemas.
//
// Most payloads are validated as a key set: the set of field names must equal
// the expected set exactly, and each field must have the declared JSON type.
//
//	createBook := validation.MustKeySet(
//	    validation.Integer("id"),
//	    validation.String("title"),
//	    validation.String("author"),
//	)
//
//	var book model.Book
//	if res := createBook.Decode(body, &book); !res.Valid {
//	    return apierror.BadRequest(res.Err())
//	}
//
// Key sets compile to JSON Schema (draft 2020-12) with additionalProperties
// disabled and every field required. Payloads that need more structure, such
// as nested arrays with a fixed length, use Schema directly.
//
// Decode fails closed: an empty body, malformed JSON or a non-object document
// is always invalid.
package validation
