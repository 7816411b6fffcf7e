// Package plate turns recognized text into the components of a Bangladeshi
// vehicle registration plate.
//
// A plate has two lines: an area name, optionally qualified as metropolitan,
// and below it a vehicle-class letter followed by a six-digit serial:
//
//	ঢাকা মেট্রো
//	গ ১২-৩৪৫৬
//
// Recognition engines return this text with noise. Lines get merged, separators
// get dropped, Bangla and ASCII digits get mixed, and area names come back in
// Latin transliteration. The parser reconciles those variations using ordered
// rule tables:
//
//   - Gazetteer: area names and the metro qualifier, matched by
//     case-insensitive substring containment in table order.
//   - Class rules: positional anchors for the class letter, relaxed step by
//     step until one of them matches.
//   - Serial layouts: hyphenated, spaced and contiguous digit groups, the
//     separated forms taking precedence.
//
// The resulting canonical plate (for example "ঢাকা-মেট্রো-গ-১২-৩৪৫৬") is the key
// used to look up the vehicle registry.
//
// Tables are built once and are read-only afterwards, so a single Parser can
// be shared by any number of goroutines.
package plate
