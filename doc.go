// Package dicebearexporter turns avatar designs into DiceBear style
// definitions: the JSON documents the DiceBear rendering engine reads to
// draw an avatar style.
//
// A manifest (YAML or JSON) describes the export: the frame holding the
// avatar body, the component groups with their variants, the color groups
// and the frame settings (license, creator, precision, target DiceBear
// version). Node markup comes either from the manifest itself or, when a
// Figma file URL and access token are given, from the Figma API.
//
// The CLI lives in cmd/dicebear-exporter; this root package exposes the same
// pipeline as a Go API.
//
// # Import
//
// The module path contains a hyphen but Go package names cannot, so the
// package is named dicebearexporter:
//
//	import "github.com/kataras/dicebear-exporter" // package dicebearexporter
//
// # Quick start
//
//	result, err := dicebearexporter.Run(ctx, dicebearexporter.Options{
//	    ManifestPath: "avatar.yml",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("definition.json", []byte(result.Definition), 0644)
//
// # Figma
//
// Set [Options.FileURL] and [Options.AccessToken] to render nodes through
// the Figma API. A manifest without a frame id takes it from the node-id
// of the URL.
//
// # Logging
//
// Pass a [Logger] implementation in [Options.Logger] to receive progress
// messages, or wrap a *slog.Logger with [NewSlogLogger]. A nil Logger
// silences all output.
//
// # Template modes
//
// Definitions for DiceBear 4.x and 5.x embed the body and component markup
// as JavaScript template literals; 6.x and later keep the raw
// {{colors.x}} and {{{components.y}}} placeholders. Unknown versions are
// built in the legacy mode with a warning.
package dicebearexporter
