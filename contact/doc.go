// Package contact implements the contact registry of a session.
//
// Contacts are created by resolving a linking code, or implicitly when an
// unknown sender's first message authenticates. They are listed in the
// order they were added and are never removed. The registry always holds
// the automated assistant contact.
//
// Example:
//
//	reg := contact.NewRegistry(mgr.PublicKey(), resolver, nil)
//	c, created, err := reg.ResolveAndLink(ctx, "X7K2QZ")
//	if err != nil {
//	    return err
//	}
//	if created {
//	    fmt.Println("linked with", c.DisplayName)
//	}
package contact
