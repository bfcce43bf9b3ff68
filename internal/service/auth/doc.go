// Package auth issues, validates and rotates bearer credentials.
//
// Access and refresh tokens are HS256-signed JWTs. Access tokens are also
// recorded in the token ledger (store.TokenStore) so a login can revoke every
// earlier session of the same user; refresh tokens are verified by signature
// and expiry alone and are not rotated when used.
package auth
