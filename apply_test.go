package partial

import (
	"strings"
	"testing"

	"github.com/dbaron/declarative-partial-updates/dom"
)

func baseDoc(t *testing.T) (*dom.Document, *dom.Node) {
	t.Helper()
	doc, err := dom.ParseDocument(strings.NewReader(
		`<!doctype html><html><head></head><body><div id="content">old</div></body></html>`))
	if err != nil {
		t.Fatal(err)
	}
	content := doc.ElementByID("content")
	if content == nil {
		t.Fatal("no content element")
	}
	return doc, content
}

func TestApply(t *testing.T) {
	doc, content := baseDoc(t)
	const src = `<p>intro</p><template patchfor="content"><h1>new</h1></template><p>outro</p>`
	if _, err := Apply(doc, strings.NewReader(src)); err != nil {
		t.Fatal(err)
	}
	if got := content.String(); got != `<div id="content"><h1>new</h1></div>` {
		t.Errorf("patched target: %q", got)
	}
	// non-segment content lands in the body in order
	body := Body(doc)
	var sb strings.Builder
	if err := dom.RenderChildren(&sb, body); err != nil {
		t.Fatal(err)
	}
	got := sb.String()
	if !strings.Contains(got, "<p>intro</p>") || !strings.Contains(got, "<p>outro</p>") {
		t.Errorf("body: %q", got)
	}
	if strings.Index(got, "<p>intro</p>") > strings.Index(got, "<p>outro</p>") {
		t.Errorf("body order: %q", got)
	}
}

func TestApplyOutOfOrderSegments(t *testing.T) {
	doc, err := dom.ParseDocument(strings.NewReader(
		`<body><div id="a">a0</div><div id="b">b0</div></body>`))
	if err != nil {
		t.Fatal(err)
	}
	// segments arrive in the reverse of document order
	const src = `<template patchfor="b">b1</template><template patchfor="a">a1</template>`
	if _, err := Apply(doc, strings.NewReader(src)); err != nil {
		t.Fatal(err)
	}
	if got := doc.ElementByID("a").Text(); got != "a1" {
		t.Errorf("target a: %q", got)
	}
	if got := doc.ElementByID("b").Text(); got != "b1" {
		t.Errorf("target b: %q", got)
	}
}

func TestExtract(t *testing.T) {
	doc, content := baseDoc(t)
	const src = `<html><body><p>chrome</p><template patchfor="content">picked</template></body></html>`
	if _, err := Extract(doc, doc.Root, strings.NewReader(src)); err != nil {
		t.Fatal(err)
	}
	if got := content.Text(); got != "picked" {
		t.Errorf("target: %q", got)
	}
	// ordinary content from the piped document is discarded
	var sb strings.Builder
	if err := dom.RenderChildren(&sb, Body(doc)); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(sb.String(), "chrome") {
		t.Errorf("extract leaked surrounding content: %q", sb.String())
	}
}

func TestSinkHoldsIncompleteSubtrees(t *testing.T) {
	doc := dom.NewDocument()
	body := dom.NewElement("body")
	doc.Root.Append(body)
	sink := NewSink(body)
	sink.Write([]byte("<p>one</p><p>tw"))
	if got := body.Text(); got != "one" {
		t.Fatalf("after partial write: %q", got)
	}
	sink.Write([]byte("o</p>"))
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}
	if got := body.Text(); got != "onetwo" {
		t.Errorf("after close: %q", got)
	}
}

func TestBodyFallsBackToRoot(t *testing.T) {
	doc := dom.NewDocument()
	if Body(doc) != doc.Root {
		t.Error("fragmentary document should fall back to root")
	}
}
