// Package directory resolves linking codes to public keys over the
// directory topic of a transport.
//
// Every session runs a Resolver. It answers QUERY packets whose code equals
// the session's current linking code, and it issues queries on behalf of the
// local user, accepting the first RESPONSE that echoes its request id.
//
//	resolver := directory.NewResolver(mgr, bus, directory.DefaultResolveTimeout)
//	defer resolver.Close()
//
//	result, err := resolver.Resolve(ctx, "X7K2QZ")
//	if errors.Is(err, directory.ErrCodeNotFound) {
//	    // nobody online owns that code today
//	}
package directory
