// Package clientcli provides a client library for the shop file server.
//
// It supports upload, download, delete, list and health operations against
// the /api/files routes, plus profile-based configuration for managing
// connections to several servers.
//
// # Basic Usage
//
// Create a client and upload two images into the same directory:
//
//	client, err := clientcli.New(&clientcli.Config{Endpoint: "http://localhost:5113"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := client.Upload(ctx, clientcli.UploadOptions{
//		LocalPaths: []string{"./frente.png", "./espalda.png"},
//		RemoteDir:  "productos/camisas",
//	})
//
// A single file is sent to the single upload route; several files go in
// batches to the multiple upload route.
//
// # Profile Configuration
//
// Profiles live in ~/.shopapp/config.yaml:
//
//	configFile, err := clientcli.LoadConfigFile(clientcli.DefaultConfigPath())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetProfile("production")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clientcli.New(clientcli.ConfigFromProfile(profile))
//
// # Output Formatting
//
// Use formatters for human-readable or JSON output:
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatUpload(os.Stdout, results)
package clientcli
