package utils

import (
	"fmt"
	"os"
)

// SendEscalationEmail notifies the operator that an accepted invitation could
// not be turned into a membership after exhausting all retry attempts. When
// OPERATOR_EMAIL is unset the escalation is logged and skipped.
func SendEscalationEmail(invitationID, organizationID, userID string, attempts int, lastError string) error {
	to := os.Getenv("OPERATOR_EMAIL")
	if to == "" {
		Logger.Warnf("OPERATOR_EMAIL not set, skipping escalation mail for invitation %s", invitationID)
		return nil
	}

	subject := fmt.Sprintf("Membership propagation needs attention: invitation %s", invitationID)

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="en">
	<body style="font-family: 'Segoe UI', Roboto, Arial, sans-serif; color: #333333;">
		<h2>Membership propagation failed</h2>
		<p>An accepted invitation could not be propagated to the membership roster
		after %d attempts. The invitation remains ACCEPTED; the membership record
		must be reconciled manually.</p>
		<table cellpadding="6">
			<tr><td><strong>Invitation</strong></td><td>%s</td></tr>
			<tr><td><strong>Organization</strong></td><td>%s</td></tr>
			<tr><td><strong>User</strong></td><td>%s</td></tr>
			<tr><td><strong>Last error</strong></td><td>%s</td></tr>
		</table>
	</body>
	</html>`, attempts, invitationID, organizationID, userID, lastError)

	return SendEmail(to, subject, body)
}
