package template

// layoutSchema describes layout.json. Semantic checks that JSON Schema
// cannot express (slot count == key, slot inside background) live in
// parseLayouts.
const layoutSchema = `{
  "type": "object",
  "required": ["layouts"],
  "properties": {
    "layouts": {
      "type": "object",
      "minProperties": 1,
      "patternProperties": {
        "^[1-9][0-9]*$": {
          "type": "array",
          "minItems": 1,
          "items": { "$ref": "#/definitions/slot" }
        }
      },
      "additionalProperties": false
    }
  },
  "definitions": {
    "slot": {
      "type": "object",
      "required": ["x", "y", "width", "height"],
      "properties": {
        "x":      { "type": "integer", "minimum": 0 },
        "y":      { "type": "integer", "minimum": 0 },
        "width":  { "type": "integer", "minimum": 1 },
        "height": { "type": "integer", "minimum": 1 }
      }
    }
  }
}`
