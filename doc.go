// Package opsy provides the dispatch and argument-validation core for exposing a
// remote API as named operations behind one generic entry point, driven by an
// automated agent.
//
// # Overview
//
// An agent calls a single entry point with an operation name and an untyped
// argument bag. This package turns that bag into a concrete handler call:
// look up → validate (against the same schema the help text is rendered from) →
// execute → return the handler's result unchanged, or a clear error for
// self-correction.
//
// Pipeline: Schema (explicit field descriptors) + handler → NewOperation → Operation →
// Registry → Execute (lookup, validate, call) → result.
//
// # Key concepts
//
//   - Single Source of Truth: one Schema drives validation, FormatHelp, and JSONSchema.
//   - Describe-then-execute: the __help__ operation returns an operation's arguments;
//     agents call it before calling the operation itself.
//   - Soft unknowns: an unknown operation name yields a descriptive result, not an error.
//   - Self-Correction: ClientError carries MissingArgument / TypeMismatch /
//     InvalidEnumValue messages back to the agent.
//   - Fail at startup: unsupported schema shapes are ConfigErrors from NewSchema
//     and Register, never per-call errors.
//
// # Example
//
//	var listServers = opsy.MustSchema("list_servers", opsy.Required("environment_id", opsy.Int))
//	op, err := opsy.NewDynamicOperation(listServers, "List servers",
//	    func(ctx context.Context, c *api.Client, args opsy.Values) (any, error) {
//	        return c.ListServers(ctx, args.Int("environment_id"))
//	    })
//	if err != nil { ... }
//	reg := opsy.NewRegistry[*api.Client]()
//	_ = reg.Register(op)
//	help, _ := reg.Execute(ctx, opsy.HelpOperation, opsy.Args{"operation": "list_servers"}, client)
//	res, err := reg.Execute(ctx, "list_servers", opsy.Args{"environment_id": 42}, client)
package opsy
