// Package executor runs GraphQL requests against a schema.
//
// # Preparation
//
// Before execution, the executor:
//  1. Parses the query text and constructs the document parts.
//  2. Validates the document. Every rule violation is collected and returned
//     together, each with the number and link of the rule it breaks.
//  3. Compiles the selected operation into a plan. Plans of valid documents
//     are cached by query text and operation name.
//  4. Coerces the request variables against the operation's variable
//     definitions. Errors here stop execution.
//
// # Execution Model
//
// Root fields start from the request's root value. Each field runs through
// the field pipeline of package fieldexec:
//
//	ValidateFieldExecution -> AuthorizeField -> InvokeFieldResolver -> ProcessChildFields
//
// Sibling fields run concurrently, except the root fields of a mutation,
// which run one after another in document order. Responses keep document
// order regardless of completion order.
//
// A field in Batch mode is resolved once for all parent values of the same
// concrete type at a level; its resolver returns a map keyed by parent
// value. Parents missing from the map resolve to null.
//
// # Errors
//
//   - Syntax and validation errors produce a result without data.
//   - Field errors null the field and are reported with their response path.
//     A null in a non-null position nulls the nearest nullable ancestor.
//   - A resolver panic, or a field that cannot be resolved at all, aborts the
//     request. The error text is only returned in debug mode.
//   - Cancelled fields are left out of the response.
package executor
