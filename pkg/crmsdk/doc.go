/*
Package crmsdk provides a client SDK for the AvaliaTec CRM service.

# Overview

The SDK covers two needs of a front end or integration: typed access to the
REST API through Client, and a client side view of the caller's permissions
through PermissionContext.

	client := crmsdk.NewClient("https://crm.example.com", crmsdk.StaticToken(accessToken))

	me, err := client.Me(ctx)

# Permission context

PermissionContext mirrors the permissions the server resolved for the current
user. It only informs UI decisions (which menu entries to render, which
buttons to disable); the server enforces every request on its own.

	pc := crmsdk.NewPermissionContext(client)
	if err := pc.Load(ctx); err != nil {
		// the context is ReadyEmpty and denies everything
	}

	if pc.HasPermission(access.Clientes, access.ActionCreate) {
		// show the "new client" button
	}

	// Refresh whenever an administrator changes the user's group.
	go pc.Watch(ctx)

# Errors

Non-2xx responses are returned as *APIError carrying the HTTP status and the
stable error code from the response body.
*/
package crmsdk
