// Package edusdk is the Go client for the EduPredict service.
//
// The SDK is split into three layers:
//
//   - Client: the HTTP gateway. It persists tokens in a CredentialStore
//     and handles expiry reactively: a 401 triggers one silent refresh and
//     retry, and only an unrecoverable 401 surfaces to the caller.
//
//   - SessionContext: the "who is signed in" state machine. It starts in
//     StateInitializing, resolves via Restore or Login, and collapses
//     exactly once (firing OnSessionExpired) when the session dies from
//     under the user.
//
//   - Guard: route gating by role, with the role-to-dashboard dispatch.
//
// Typical usage:
//
//	store := edusdk.NewFileStore(filepath.Join(cfgDir, "credentials.json"))
//	client := edusdk.NewClient("https://edu.example.com", store)
//	session := edusdk.NewSessionContext(client)
//	session.OnSessionExpired = func() { ui.NavigateTo(edusdk.LoginPath) }
//
//	if err := session.Restore(ctx); err != nil {
//		// transport trouble; still initializing, retry later
//	}
//
//	err := session.Login(ctx, email, password)
//	var mfa *edusdk.MFARequiredError
//	if errors.As(err, &mfa) {
//		err = session.CompleteMFA(ctx, mfa.MFAToken, promptForCode())
//	}
//
//	guard := edusdk.NewGuard(session, edusdk.DefaultRules())
//	switch d := guard.CanEnter("/dashboard/teacher"); d.Kind {
//	case edusdk.Allow:
//		render()
//	case edusdk.Redirect:
//		ui.NavigateTo(d.Target)
//	case edusdk.Undetermined:
//		spinner()
//	}
package edusdk
