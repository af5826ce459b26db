// Package output formats command results for simpleweather.
//
// It supports output formats:
//   - text: bordered tables for lists, key-value lines for objects (default)
//   - table: bordered tables for everything tabular
//   - json: pretty-printed JSON
//   - ndjson: newline-delimited JSON
//   - yaml: YAML
//
// Tables are drawn by internal/table, so cells are centered and column
// widths follow grapheme cluster counts.
//
// The format, jq query and JSONPath travel on the context. In the root
// command's PersistentPreRunE:
//
//	format, err := output.ParseFormat(formatFlag)
//	if err != nil {
//	    return err
//	}
//	ctx := output.WithFormat(cmd.Context(), format)
//	cmd.SetContext(ctx)
//
// In commands:
//
//	printer := output.NewPrinter(os.Stdout, output.FormatFromContext(ctx))
//	return printer.Print(ctx, data)
package output
