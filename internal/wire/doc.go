// Package wire serializes log groups into the length-prefixed binary format
// accepted by the ingestion service.
//
// The format is protobuf-compatible:
//
//	LogGroup {
//	  repeated Log logs   = 1;
//	  optional string topic  = 3;
//	  optional string source = 4;
//	  repeated KV tags       = 6;
//	}
//	Log {
//	  uint32 time               = 1;
//	  repeated KV contents      = 2;
//	  optional fixed32 time_ns  = 4;
//	}
//	KV { string key = 1; string value = 2; }
//
// Sizes and bytes are produced from the same per-field formulas, so
// len(Encode(m, logs)) always equals EncodedLen(m, logs).
package wire
