// Package users resolves ledger user ids to mail contacts and preferences.
package users
