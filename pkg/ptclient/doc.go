// Package ptclient is the entry point for constructing a PassTools API
// client that implements the passtools.Client interface.
//
// Quick start
//
//	settings := passtools.NewSettings(passtools.Configuration{
//		URL:    "https://api.passtools.com/v1",
//		APIKey: "i_am_an_api_key",
//	})
//
//	cli, err := ptclient.New(settings, ptclient.WithRetry(3))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	passes, err := cli.Passes().List(ctx)
//
// The settings are shared, not copied: calling settings.Configure after New
// changes the url, API key or download directory used by later calls.
package ptclient
