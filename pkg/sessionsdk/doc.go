/*
Package sessionsdk provides a client for the session gateway with automatic
credential renewal.

# Overview

The gateway keeps access and refresh credentials in HttpOnly cookies, so this
SDK never sees a token value. The Client holds a cookie jar; the Coordinator
decides when the session needs renewing and guarantees that any number of
concurrent requests produce at most one renewal round-trip.

# Basic Usage

	client, err := sessionsdk.NewClient("https://gateway.example.com", 15*time.Minute)
	if err != nil {
		log.Fatal(err)
	}

	client.Coordinator.OnSessionExpired = func() {
		// Route the user back to the login screen.
	}

	profile, err := client.Login(ctx, "alice", "secret")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("logged in as %s\n", profile.Username)

	// Issue resource requests through Do; renewal is automatic.
	resp, err := client.Get(ctx, "/resource/v1/items")

# Renewal Behaviour

Renewal happens on two paths, both funnelled through the Coordinator's
single-flight gate:

  - Proactive: when the access credential is within a safety margin of its
    expiry, Do renews before sending the request. A proactive failure does
    not fail the request; the reactive path owns the outcome.
  - Reactive: a 401 on a resource request triggers exactly one renewal and
    retry. A 401 on the retry, with a provably fresh credential, declares
    the session expired.

Requests to the session endpoints themselves (login, renew, logout, whoami)
bypass renewal entirely: a 401 from them is an answer, not a trigger.

# Session Expiry

Once the Coordinator declares the session expired, OnSessionExpired fires at
most once and subsequent Do calls fail fast with ErrSessionExpired until the
next successful Login. This keeps a dead session from looping through
renewal attempts.

# Thread Safety

A Client is safe for concurrent use. The Coordinator serializes renewals and
every waiter observes the shared outcome.
*/
package sessionsdk
