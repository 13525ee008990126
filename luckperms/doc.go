// Package luckperms provides a client for the LuckPerms REST API.
//
// LuckPerms is a permissions plugin for Minecraft servers. Its REST API exposes
// users, groups, permission nodes, tracks and the action log over HTTP and JSON.
// Every Client method maps to exactly one HTTP request; nothing is cached or retried.
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client, err := luckperms.NewClient(
//		"http://localhost:8080",
//		"your-api-key",
//		logger,
//		luckperms.WithTimeout(10*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := client.CheckUserPermission(ctx, id, "example.perm")
//
// # Error Handling
//
// NewClient returns *ClientCreationError and every operation returns *RequestError.
// Both carry an ErrorKind (KindHTTP, KindJSON or KindURL) and unwrap to the cause.
// Non-success responses unwrap to *APIError:
//
//	if luckperms.IsNotFound(err) {
//		// Handle missing subject
//	}
//
// GetUser and GetGroup are the exception: a 404 returns a nil value and a nil error.
package luckperms
