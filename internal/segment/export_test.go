package segment

// WithMkdirAll exposes directory creation injection to black-box tests.
var WithMkdirAll = withMkdirAll
