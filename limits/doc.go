// Package limits provides centralized size constants and validation
// functions for ShadowLink.
//
// # Limits
//
//   - MaxDisplayName (128 bytes): identity and contact display names.
//   - MaxMessageContent (1 MiB): plaintext bodies accepted by a session.
//     The message codec does not restrict plaintext length itself.
//   - MaxAttachmentName (255 bytes) and MaxAttachmentSize (5 GiB): the
//     out-of-band attachment carried next to an envelope.
//   - MaxDirectoryPacket (16 KiB): directory QUERY/RESPONSE packets, checked
//     before they are parsed.
//
// # Validation Functions
//
// Every validator wraps one of [ErrEmpty], [ErrTooLarge] or [ErrInvalid]:
//
//	if err := limits.ValidateContent(text, attachment != nil); err != nil {
//	    if errors.Is(err, limits.ErrTooLarge) {
//	        // reject before creating a message
//	    }
//	}
package limits
