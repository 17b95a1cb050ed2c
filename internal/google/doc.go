// Package google manages OAuth2 tokens for the Gmail accounts the
// assistant reads. Tokens live as one JSON file per account under the user
// cache directory and are written by the auth command.
package google
