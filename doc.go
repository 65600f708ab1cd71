package skematic

// Package skematic provides:
//
// - Type-safe validation and transformation based on Schema/Codec (Parse/Validate/Decode/Encode)
// - A stable error model via Issues (JSON Pointer, code, message)
// - Metadata for Presence collection and preserve-encoding through WithMeta APIs
// - Strict wire handling with duplicate-key/depth/size enforcement at decode time
//
// Design policy:
// - Keep only public APIs in the root package; put detailed implementations under internal/.
// - Place DSL under dsl/, codecs under codec/, and cross-field rule helpers under rules/.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//  s := buildSchema()
//  v, err := skematic.ParseFrom(ctx, s, skematic.JSONBytes(data))
//  dm, err := skematic.ParseFromWithMeta(ctx, s, skematic.JSONBytes(data))
//
//  wire, err := someCodec.Encode(ctx, domain)
//  wire2, err := someCodec.EncodePreserving(ctx, dm)
//
