// Package auth provides authentication and authorisation for Lampnet Core.
//
// It implements a 2-tier role model (operator → admin) with:
//   - Argon2id password hashing (OWASP 2025 recommendation)
//   - Short-lived JWT access tokens validated by signature only
//   - First-boot admin seeding with a generated one-time password
//
// Operators can read lamp state and issue control commands; admins can
// additionally delete lamps and manage accounts. Tokens carry the role
// claim so the API layer can authorise without a database lookup.
package auth
