// Package authsdk is a Go client for the Eatzy auth bridge service. It
// covers the sign-up/sign-in/social endpoints, token verification, and the
// configuration API. Downstream services typically only need Verify.
package authsdk
