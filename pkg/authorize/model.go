package authorize

// defaultModel is used when no model file is configured. Subjects are lab
// roles, domains are "lab:<id>" and may be matched with keyMatch patterns
// such as "lab:*". A single deny wins over any allow.
const defaultModel = `
[request_definition]
r = sub, dom, obj, act

[policy_definition]
p = sub, dom, obj, act, eft

[policy_effect]
e = some(where (p.eft == allow)) && !some(where (p.eft == deny))

[matchers]
m = (p.sub == "*" || r.sub == p.sub) && (p.dom == "*" || keyMatch(r.dom, p.dom)) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`
