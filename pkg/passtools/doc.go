// Package passtools contains the public types of the PassTools API client:
// the shared Settings, the error taxonomy and the Pass model.
//
// # Creating a client
//
//	settings := passtools.NewSettings(passtools.Configuration{
//		URL:         "https://api.passtools.com/v1",
//		APIKey:      os.Getenv("PASSTOOLS_API_KEY"),
//		DownloadDir: "/tmp/passes",
//	})
//
//	client, err := ptclient.New(settings)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Errors
//
// Three kinds of failure are kept apart:
//
//   - *ConfigurationError: a setting is missing. Returned before any request.
//   - *APIError: the server answered with a non-2xx status. List, Show and
//     BuildFromCurrent put it into the returned payload or Pass; the write
//     operations put it into the WriteResult.
//   - *TransportError: the server could not be reached. Always returned as
//     an error.
//
//	pass, err := client.Passes().BuildFromCurrent(ctx, 10)
//	if err != nil {
//		return err // configuration or transport problem
//	}
//
//	if !pass.Valid() {
//		msg, _ := pass.RawData().Message() // e.g. "400 Bad Request"
//	}
//
// # Pass fields
//
// Field keys use underscores in the API. They can be addressed either by key
// or by Go member name:
//
//	field, _ := pass.Field("FirstName") // same as pass.Field("first_name")
//	_ = pass.SetValue("LastName", "Smith")
package passtools
