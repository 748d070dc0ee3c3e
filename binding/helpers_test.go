package binding_test

import (
	"strings"
	"testing"

	"golang.org/x/net/html"

	"fjc/contract"
)

const pageContract = `
name: product-page
tags:
  - tag: title
    type: data
    dataType: string
  - tag: price
    type: data
    dataType: number
  - tag: mediaType
    type: variant
    dataType: enum (IMAGE | VIDEO)
  - tag: isOnSale
    type: variant
    dataType: boolean
  - tag: addToCart
    type: interactive
    elementType: HTMLButtonElement
  - tag: quantity
    type: [data, interactive]
    dataType: number
  - tag: items
    type: sub-contract
    repeated: true
    trackBy: id
    tags:
      - tag: id
        type: data
      - tag: name
        type: data
      - tag: image
        type: data
      - tag: remove
        type: interactive
      - tag: options
        type: sub-contract
        repeated: true
        trackBy: code
        tags:
          - tag: code
            type: data
          - tag: label
            type: data
`

const cartContract = `
name: cart-indicator
tags:
  - tag: itemCount
    type: data
    dataType: number
`

func testPage(t *testing.T) *contract.Page {
	t.Helper()
	pc, err := contract.Decode(strings.NewReader(pageContract))
	if err != nil {
		t.Fatalf("page contract: %v", err)
	}
	cc, err := contract.Decode(strings.NewReader(cartContract))
	if err != nil {
		t.Fatalf("cart contract: %v", err)
	}
	return &contract.Page{
		Route:    "/products",
		Contract: pc,
		Usages: []*contract.Usage{
			{Key: "cart", Plugin: "wix-stores", Component: "cart-indicator", Contract: cc},
		},
	}
}

// element parses fragment and returns the first element inside body.
func element(t *testing.T, fragment string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader("<html><body>" + fragment + "</body></html>"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var body *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "body" {
			body = n
			return
		}
		for c := n.FirstChild; c != nil && body == nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	t.Fatal("no element in fragment")
	return nil
}
