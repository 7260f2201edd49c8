package opsy

import (
	"fmt"
	"strings"
)

// FormatHelp renders schema as the line-oriented description an agent reads before
// calling the operation: a header naming the operation, then one line per field in
// declaration order with its type name and an "(optional)" marker for fields that
// may be omitted. A schema without fields yields the header alone. Output is
// deterministic for identical schemas.
func FormatHelp(schema *Schema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "To perform the '%s' operation, you must specify the following arguments:", schema.operation)
	for _, f := range schema.fields {
		b.WriteString("\n- ")
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Type.Name())
		if !f.Required {
			b.WriteString(" (optional)")
		}
	}
	return b.String()
}

// UnknownOperationMessage is the text returned for an operation name that is not
// registered.
func UnknownOperationMessage(operation string) string {
	return "Unknown operation: " + operation
}

// formatIndex lists the available operations when __help__ is called without a target.
func formatIndex(names []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Please specify an operation in args {'%s': <operation_name>}.\n", HelpTargetKey)
	b.WriteString("Available operations:")
	for _, name := range names {
		b.WriteString("\n- ")
		b.WriteString(name)
	}
	return b.String()
}
