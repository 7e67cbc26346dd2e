// Package api defines the tabsplit Connect services, their JSON messages,
// and handler and client constructors.
//
// Every handler and client is configured with Codec, so the services speak
// the Connect protocol with JSON bodies:
//
//	curl -H 'Content-Type: application/json' \
//	    -d '{"text":"1 Burger\n£8.50"}' \
//	    http://localhost:8080/tabsplit.v1.ReceiptService/ParseReceipt
package api
