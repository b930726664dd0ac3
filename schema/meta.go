package schema

// metaSchemaJSON is the Draft 2020-12 schema every declarative Doc is
// validated against before it is unmarshaled and built. It only
// constrains shape (required fields, enums, types) — cross-field
// semantics (does a relation's target name actually exist, is lo<=hi)
// are checked in Build, where a proper *Error with a field path can be
// raised instead of a generic schema violation.
const metaSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "schema://varspec/symbol.json",
  "type": "object",
  "required": ["name", "fields"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "version": {"type": "string"},
    "summary": {"type": "string"},
    "fields": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "variable"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "variable": {"$ref": "#/$defs/variable"}
        }
      }
    }
  },
  "$defs": {
    "type_doc": {
      "type": "object",
      "required": ["kind"],
      "properties": {
        "kind": {"enum": ["integer", "string", "raw", "hexastring", "bitarray", "ipv4", "timestamp"]},
        "width": {"type": "integer", "minimum": 0},
        "signed": {"type": "boolean"},
        "endian": {"enum": ["big", "little"]},
        "min": {"type": "integer"},
        "max": {"type": "integer"},
        "min_len": {"type": "integer", "minimum": 0},
        "max_len": {"type": "integer", "minimum": 0},
        "unbounded": {"type": "boolean"},
        "eos": {"type": "string"},
        "labels": {"type": "array", "items": {"type": "string"}}
      }
    },
    "variable": {
      "type": "object",
      "required": ["kind"],
      "properties": {
        "kind": {"enum": ["data", "relation", "alt", "agg", "repeat", "opt"]},
        "name": {"type": "string"},
        "scope": {"enum": ["none", "constant", "message", "session"]},
        "type": {"$ref": "#/$defs/type_doc"},
        "value_hex": {"type": "string"},
        "value_bits": {"type": "integer", "minimum": 0},
        "relation_kind": {"enum": ["size", "value", "checksum", "padding"]},
        "targets": {"type": "array", "minItems": 1, "items": {"type": "string"}},
        "rel_type": {"$ref": "#/$defs/type_doc"},
        "factor": {"type": "number"},
        "offset": {"type": "number"},
        "modulo": {"type": "integer", "minimum": 1},
        "once": {"type": "boolean"},
        "checksum_algo": {"enum": ["crc32", "blake2b256", "sha3256"]},
        "children": {"type": "array", "items": {"$ref": "#/$defs/variable"}},
        "deterministic": {"enum": ["last"]},
        "child": {"$ref": "#/$defs/variable"},
        "lo": {"type": "integer", "minimum": 0},
        "hi": {"type": "integer", "minimum": 0},
        "delimiter": {"$ref": "#/$defs/variable"}
      },
      "allOf": [
        {
          "if": {"properties": {"kind": {"const": "data"}}},
          "then": {"required": ["type"]}
        },
        {
          "if": {"properties": {"kind": {"const": "relation"}}},
          "then": {"required": ["relation_kind", "targets"]}
        },
        {
          "if": {"properties": {"kind": {"enum": ["alt", "agg"]}}},
          "then": {"required": ["children"]}
        },
        {
          "if": {"properties": {"kind": {"const": "repeat"}}},
          "then": {"required": ["child", "lo", "hi"]}
        },
        {
          "if": {"properties": {"kind": {"const": "opt"}}},
          "then": {"required": ["child"]}
        }
      ]
    }
  }
}`
