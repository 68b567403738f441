/*
Package signupsdk is a client for the hub signup service.

# Overview

Public operations (signup, invite validation, password token exchange,
bootstrap and health checks) live on SDKClient. Operations that need a bearer
token live on Session, created from an access token:

	client := signupsdk.NewSDKClient("https://signup.example.com")

	// Public signup with an invite code
	res, err := client.Signup(ctx, signupsdk.SignupRequest{
		Email:      "founder@example.com",
		Password:   "correct horse battery",
		FullName:   "Ada Founder",
		InviteCode: "ABCD2345EFGH",
	})

	// Obtain a session for the admin API (local identity provider only)
	session, err := client.AuthenticateWithPassword(ctx, "admin@example.com", password)

	// Issue an invite scoped to the caller's hub
	invite, err := session.IssueInvite(ctx, signupsdk.InviteRequest{
		AccountType:  "business",
		InvitedEmail: "founder@example.com",
	})

# Errors

Every failed call returns an *APIError carrying the HTTP status and the
service error code (INVALID_INVITE, CONFLICT, UNAUTHORIZED, ...):

	var apiErr *signupsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == signupsdk.CodeInvalidInvite {
		// ask the user for a new code
	}

Sessions are immutable and safe for concurrent use.
*/
package signupsdk
