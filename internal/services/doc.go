// Package services implements the Spotify Web API client used by spotlist.
//
// # Token Exchange
//
// [TokenExchanger] performs the client-credentials grant: one POST to the accounts
// service with HTTP Basic credentials. It fails with [shared.ErrMalformedBody] when
// the reply is not JSON and with [shared.ErrMissingField] when it has no access_token.
// It also satisfies [oauth2.TokenSource] through [TokenExchanger.TokenSource].
//
// # Playlist Retrieval
//
// [SpotifyClient] fetches playlist metadata and the paginated track listing. Neither
// call raises on an upstream failure: a non-200 status, an undecodable page or a page
// without items yields a [models.Retrieval] with status [models.Failed] and a logged
// diagnostic. Only transport faults are returned as errors.
//
// A failure on any page discards the tracks gathered from earlier pages; the
// discarded count is reported on the retrieval.
//
// # Transport
//
// All requests go through the [Transport] interface. [HTTPTransport] is the
// net/http implementation; tests substitute a scripted transport.
package services
