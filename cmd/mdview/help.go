package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdview <command> [flags] [args]")
	fmt.Fprintln(w, "       mdview <document> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve      View a markdown document in the browser (default)")
	fmt.Fprintln(w, "  export     Write a standalone HTML or PDF copy of a document")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdview help <command>' for details on a specific command.")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdview serve <document> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve a live view of a markdown document. Local files are re-rendered")
	fmt.Fprintln(w, "when they change; the reading position and theme are kept.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  document    File path, file:// URL or http(s):// URL")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <host:port>    Listen address (default: 127.0.0.1:6419)")
	fmt.Fprintln(w, "  -i, --interval <d>        Refresh polling interval (default: 1s)")
	fmt.Fprintln(w, "  -w, --watch               Also wake on file system events")
	fmt.Fprintln(w)
	printRenderUsage(w)
	printCommonUsage(w)
}

// printExportUsage prints usage for the export command.
func printExportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdview export <document> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render a document once and write a standalone copy.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  document    File path, file:// URL or http(s):// URL")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default: <document>.<format>)")
	fmt.Fprintln(w, "  -f, --format <s>          Format: html, pdf (default: from --output, else html)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Export timeout (default: 30s)")
	fmt.Fprintln(w, "      --theme <s>           Theme: light, dark (default: saved preference)")
	fmt.Fprintln(w, "      --css <path>          Extra CSS file appended to the page")
	fmt.Fprintln(w)
	printRenderUsage(w)
	printCommonUsage(w)
}

func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom asset directory (styles/, templates/, scripts/)")
	fmt.Fprintln(w, "      --state-file <path>   Theme preference file")
	fmt.Fprintln(w, "      --diagram-lang <s>    Fenced code language rendered as diagrams (default: mermaid)")
	fmt.Fprintln(w)
}

func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MDVIEW_CONFIG, MDVIEW_ADDR, MDVIEW_INTERVAL, MDVIEW_WATCH,")
	fmt.Fprintln(w, "  MDVIEW_STATE_FILE, MDVIEW_ASSETS, MDVIEW_TIMEOUT")
}

// printHelp prints help for a command, or the main usage.
func printHelp(w io.Writer, command string) error {
	switch command {
	case "":
		printUsage(w)
	case cmdServe:
		printServeUsage(w)
	case cmdExport:
		printExportUsage(w)
	case cmdVersion:
		fmt.Fprintln(w, "Usage: mdview version")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show version information.")
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
	return nil
}
