// Package email sends verification codes to users.
//
// Delivery is a capability behind the Sender interface: the SMTP
// implementation talks to a configured relay, the log implementation just
// prints the code, and tests substitute their own. Delivery is best-effort;
// the auth flow offers a resend path rather than depending on it.
package email
