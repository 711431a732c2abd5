// Package similarity scores pairwise hybrid lexical/semantic similarity
// between a probe text and a stored plaintext.
//
// The score is a weighted combination of two TF-IDF cosine similarities
// computed over the two-document corpus {probe, candidate}:
//
//   - Word level: contiguous word n-grams (default length 1-3) with
//     stopwords removed. Captures topical overlap robust to reordering.
//   - Character level: character n-grams (default length 3-5) with no
//     stopword removal and no word boundaries. Captures paraphrase and
//     sub-word reuse that word n-grams miss.
//
// Scoring is a pure function of its two inputs: a fresh vector space is
// built per call and no state is shared, so an Engine is safe for
// concurrent use. Cost scales with input length; callers bound document
// count and length per query. Sub-linear lookup is a caller concern -
// keeping Score pairwise lets an external index be layered on top.
package similarity
