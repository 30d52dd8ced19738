package store

var Translate = translate
