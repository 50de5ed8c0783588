package leads

// Record is one lead: a free-form mapping from field name to value. Field sets
// vary per record and per input source; no fixed schema is assumed.
type Record map[string]any

// Collection is an ordered sequence of records. Insertion order is preserved
// and significant: it is forwarded verbatim into prompts, and any reordering
// (by score) happens downstream of the model, not here.
type Collection []Record
