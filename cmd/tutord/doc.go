// Command tutord runs the pedagogical tutoring service.
//
// Usage:
//
//	tutord serve                       # start the service
//	tutord serve --config config.yaml  # with a config file
//	tutord version                     # print build information
//	tutord health                      # probe a running instance
package main
