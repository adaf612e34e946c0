// Package serializer converts protocol messages (CommandRequest and
// CommandResponse) to and from the byte form carried inside transport
// frames. Serialization is pluggable so deployments can trade
// readability against speed without touching transport or server code.
//
// Three implementations are provided:
//
//   - Binary: A custom, self-describing binary format using presence
//     flags and the storage package's value codec. Smallest and fastest;
//     the default wire format.
//
//   - JSON: Human-readable encoding, useful for debugging and for
//     clients in other languages.
//
//   - GOB: Go's native binary encoding.
//
// Both endpoints of a connection must be configured with the same
// serializer; a mismatch surfaces as a decode failure, which closes the
// affected logical stream but never the physical connection.
package serializer
